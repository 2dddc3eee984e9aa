package task

import "strings"

// Prompt text sent to the completion provider. The wording is part of the
// product: answer quality and format depend on these exact instructions,
// so they are kept as fixed constants rather than assembled dynamically.

const queryGenSystemPrompt = "You are a helpful assistant that generates YouTube search queries."

const queryGenUserPrompt = "Write a specific YouTube search query for: \"%s\". Only return the query string."

const solutionSystemPrompt = "You are an expert Engineering Professor for Sant Gadge Baba Amravati University.\n" +
	"Your task is to write detailed, academic exam solutions.\n\n" +
	"**CORE RULES (STRICT ADHERENCE REQUIRED):**\n" +
	"1. **NO REPETITION:** Do NOT repeat the question. Do NOT output your internal instructions. Start the answer immediately.\n" +
	"2. **MATH FORMATTING:** Use `$$` for ALL distinct equations. \n" +
	"   - Syntax: `$$ equation $$` (with blank lines before and after).\n" +
	"   - NEVER use inline math `$` for formulas.\n" +
	"3. **DERIVATIONS:** Show every step clearly on new lines.\n" +
	"4. **STRUCTURE:** Use `## Headings` and bullet points.\n" +
	"5. **DIAGRAMS:** If needed, use Mermaid.js syntax inside ```mermaid blocks.\n"

// comparisonFormatRule is appended to the system prompt when the question
// asks for a comparison, forcing tabular output instead of prose.
const comparisonFormatRule = "\n\n🚨 **MANDATORY FORMATTING FOR THIS QUESTION** 🚨\n" +
	"This question asks for a COMPARISON or DIFFERENCE.\n" +
	"1. You MUST present the core differences in a **Markdown Table**.\n" +
	"2. The table must have clear columns (e.g., Parameter | Concept A | Concept B).\n" +
	"3. Do NOT write the differences as paragraphs. Use the table."

const solutionUserPrompt = "**Subject Unit:** %s\n**Target Depth:** %s\n\n**Question:**\n%s"

// Depth instructions picked from the mean of a question's historical marks.
const (
	depthConcise       = "Provide a concise answer (3-4 marks)."
	depthExtensive     = "Provide an extensive, in-depth answer (13 marks)."
	depthComprehensive = "Provide a comprehensive answer (approx. 2-3 pages)."
)

// solutionMaxTokens caps completion length for solution generation. Query
// generation runs uncapped because queries are a single short line.
const solutionMaxTokens = 4096

// comparisonKeywords mark questions whose answers must include a
// comparison table. Matched case-insensitively as plain substrings, so
// " vs " keeps its surrounding spaces to avoid matching inside words.
var comparisonKeywords = []string{
	"compare", "difference", "distinguish", "versus", " vs ",
	"differentiate", "comparison", "similarities", "contrast",
}

// isComparisonQuestion reports whether the question calls for a
// side-by-side comparison.
func isComparisonQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range comparisonKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
