// Package serializer provides the pluggable message codecs of the host link.
//
// Three implementations of IHostSerializer ship with easel:
//
//   - JSON: human-readable, interoperable, the default. Useful when poking at
//     the simulator with generic tooling.
//   - GOB: Go-native binary encoding, more compact than JSON.
//   - Binary: a hand-written format with a presence-flags byte and
//     length-prefixed fields, the most compact and the fastest of the three.
//
// All three produce self-contained byte slices; framing is the transport
// layer's job. A message serialized by one implementation can only be
// deserialized by the same implementation - the link's two ends must agree
// on the codec.
package serializer
