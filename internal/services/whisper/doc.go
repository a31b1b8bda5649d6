// Package whisper transcribes source media through the OpenAI audio API and
// groups the returned word timestamps into sentence-sized segments.
package whisper
