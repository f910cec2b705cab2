// Package builder compiles a voice font from a TOML build manifest and the
// textual feature files the external extractor tools emit.
//
// A build runs as a pipeline of named stages resolved through an explicit
// Registry: parse the question schema, compile the acoustic feature matrices
// into a keyed data-table container, compile the concatenation-cost tables,
// intern the schema strings, and assemble the final font artifact. Each stage
// factory validates its manifest inputs at construction, so a misconfigured
// manifest fails before any file is written:
//
//	man, err := builder.LoadManifest("voice.toml")
//	if err != nil {
//		return err
//	}
//	b, err := builder.New(man, filepath.Dir("voice.toml"))
//	if err != nil {
//		return err
//	}
//	result, err := b.Build()
//
// Feature files are whitespace-delimited float matrices, one row per line,
// values formatted with six decimal places; ReadRows and WriteRows implement
// both sides of that contract.
package builder
