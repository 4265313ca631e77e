package api

// Request/response shapes of the Runera backend.

type NonceRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type NonceResponse struct {
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

type ConnectRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
	Nonce         string `json:"nonce"`
}

type ConnectResponse struct {
	Token string `json:"token"`
	User  struct {
		WalletAddress string `json:"walletAddress"`
		Nonce         string `json:"nonce"`
	} `json:"user"`
}

type GPSPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

type RunSubmitRequest struct {
	DistanceMeters  float64    `json:"distanceMeters"`
	DurationSeconds int64      `json:"durationSeconds"`
	StartTime       int64      `json:"startTime"`
	EndTime         int64      `json:"endTime"`
	DeviceHash      string     `json:"deviceHash"`
	GPSData         []GPSPoint `json:"gpsData,omitempty"`
}

// RunStatusVerified is the only status that carries an on-chain sync
// authorization; anything else is a rejection with a reason code.
const RunStatusVerified = "VERIFIED"

type ProfileStats struct {
	XP                  int64 `json:"xp"`
	Level               int64 `json:"level"`
	RunCount            int64 `json:"runCount"`
	AchievementCount    int64 `json:"achievementCount"`
	TotalDistanceMeters int64 `json:"totalDistanceMeters"`
	LongestStreakDays   int64 `json:"longestStreakDays"`
	LastUpdated         int64 `json:"lastUpdated"`
}

// OnchainSync is the signature-gated stats update: the enclosed stats
// may be written on-chain for this wallet until the deadline passes.
type OnchainSync struct {
	Signature string       `json:"signature"`
	Deadline  int64        `json:"deadline"`
	Stats     ProfileStats `json:"stats"`
}

type RunSubmitResponse struct {
	RunID       string       `json:"runId"`
	Status      string       `json:"status"`
	ReasonCode  string       `json:"reasonCode,omitempty"`
	XPEarned    int64        `json:"xpEarned,omitempty"`
	OnchainSync *OnchainSync `json:"onchainSync,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
