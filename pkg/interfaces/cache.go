package interfaces

// ParserCache stores rendered parser output keyed by page, revision and the
// fingerprint of the parser options used to produce it.
type ParserCache interface {
	Get(key string) (*ParserOutput, bool)
	Set(key string, output *ParserOutput)
	Delete(key string)
}
