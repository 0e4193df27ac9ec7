// Package common holds the types shared between the host-link client, the
// transports and the host simulator: the wire message structure with its
// factory functions, the link and simulator configuration structs, and the
// logging setup.
//
// The message format defined here is easel's own development bridge, spoken
// by the bundled host simulator. The proprietary protocol of a real host
// application is out of scope; production embedders supply their own
// client.IHost implementation and never touch this package's wire types.
package common
