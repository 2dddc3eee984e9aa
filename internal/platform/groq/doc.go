// Package groq implements the generation.Generator interface on top of
// Groq's OpenAI-compatible chat completion API. It owns everything the
// rest of the application should not care about: the key pool, quota
// detection, rotation between keys, cooldowns once the whole pool is
// exhausted, and retry accounting.
package groq
