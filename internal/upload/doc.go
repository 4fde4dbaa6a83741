// Package upload stores task completion photos. Content is sniffed rather than
// trusted from the client, and only image types are accepted.
package upload
