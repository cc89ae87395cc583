package types

// EmotionStats is a derived five-bucket partition of one user's emotion
// entries. Recomputed on read, never stored. The buckets always sum to Total.
type EmotionStats struct {
	Level1 int64 `json:"level1"`
	Level2 int64 `json:"level2"`
	Level3 int64 `json:"level3"`
	Level4 int64 `json:"level4"`
	Level5 int64 `json:"level5"`
	Total  int64 `json:"total"`
}

// AnalyticsData is the admin-facing aggregate view. Derived, never stored.
type AnalyticsData struct {
	TotalUsers          int64            `json:"total_users"`
	TotalBookings       int64            `json:"total_bookings"`
	TotalEmotionEntries int64            `json:"total_emotion_entries"`
	TotalChatMessages   int64            `json:"total_chat_messages"`
	BookingsByStatus    map[string]int64 `json:"bookings_by_status"`
}
