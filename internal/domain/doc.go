// Package domain contains the core business entities and value objects of
// the application: the question bank document, its units and questions, and
// the types that preserve the bank file's on-disk shape across load/save
// cycles. It is independent of any specific infrastructure or delivery
// mechanism.
package domain
