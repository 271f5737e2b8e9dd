package client

// StatusRunning is the server status for which the backend is tailing logs.
const StatusRunning = "running"

type User struct {
	ID       int64  `json:"idUser"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ServerConfig is the subset of a monitored server's configuration the
// client displays.
type ServerConfig struct {
	ID          int64  `json:"idServerConfig"`
	Name        string `json:"name"`
	IPAddress   string `json:"ipAddress"`
	Protocol    string `json:"protocol"`
	Port        int    `json:"port"`
	LogPath     string `json:"logPath"`
	LogType     string `json:"logType"`
	Status      string `json:"status"`
	FetchPeriod int    `json:"fetchFrequencyMinutes"`
}

// AutoRefresh reports whether the live stream should be opened right away.
func (s *ServerConfig) AutoRefresh() bool {
	return s.Status == StatusRunning
}
