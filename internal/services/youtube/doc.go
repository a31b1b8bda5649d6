// Package youtube publishes rendered clips through the YouTube Data API:
// refresh-token auth, multipart video insert, thumbnail set, and engagement
// comments.
package youtube
