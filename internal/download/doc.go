package download

// Package download implements the direct transfer engine: URL validation, an
// advisory HEAD probe, a streaming GET with progress events, filename
// resolution from the hint, URL and media type, and saving the payload into
// the download directory. It has no UI dependency; callers receive progress
// through a callback and exactly one RetrievalOutcome per retrieval.
