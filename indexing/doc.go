// Package indexing builds the code index: it stores a parsed code set as
// records, trains the hierarchy embedding, and writes each record's vector
// back through the repository.
//
// The Pipeline runs the Builder and Vectorizer stages in order and records
// IndexInfo when both complete. Both stages are usable on their own. The
// vectorize stage processes batches concurrently on a worker pool, retries
// conflicting updates with exponential backoff, and checkpoints a completed
// prefix of the record space so an interrupted run can resume.
package indexing
