package config

const (
	// DefaultTokenFile is where the image host token is cached between runs.
	DefaultTokenFile = "./token.json"

	// DefaultMaxUploadBytes is the image host's upload ceiling (5 MiB).
	DefaultMaxUploadBytes = 5 * 1024 * 1024
)
