// Package csvstream streams RFC-4180-style delimited text to and from
// asynchronous byte sources and sinks without materializing whole files.
//
// The read path is a quote-aware state machine fed by an incrementally
// refilled buffer; its state survives arbitrary chunk boundaries, so a
// quoted field may open in one chunk and close in a later one. The write
// path renders records per a configurable Dialect and batches bytes before
// flushing. Every public operation takes a context and suspends only while
// waiting on the source or sink, never mid state transition.
//
//	src, _ := file.Open("input.csv")
//	r, _ := csvstream.NewReader(src)
//	defer r.Close()
//	for rec, err := range r.Rows(ctx) {
//		...
//	}
//
// Dict adapters project ordered records onto key-value mappings, and the
// source subpackages provide file, follow-mode, in-memory, TCP and MQTT
// byte streams.
package csvstream
