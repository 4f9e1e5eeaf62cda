package port

// AvatarTranscoder re-encodes uploaded image bytes into the single
// canonical avatar form: a 250x250 raster in one fixed format. Oversized
// or non-allow-listed input fails with a domain.ValidationError.
type AvatarTranscoder interface {
	Normalize(data []byte) ([]byte, error)
	ContentType() string
}
