package usecase

// FallbackReply exposes the fixed fallback text to tests
const FallbackReply = fallbackReply

// SanitizeReply exposes output sanitation to tests
func (uc *UseCases) SanitizeReply(raw string) string {
	return uc.sanitizeReply(raw)
}
