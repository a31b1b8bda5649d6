// Package captioner generates clip titles, captions, hashtags, and publish
// descriptions through the chat completion API, with deterministic fallbacks
// when the model is unavailable or returns malformed output.
package captioner
