package domain

// LoadError represents an error loading a specific plugin config file
type LoadError struct {
	FilePath string `json:"file_path"`      // Path to the file that failed to load
	Error    string `json:"error"`          // Error message describing the failure
	Line     int    `json:"line,omitempty"` // Line number where the error occurred (if applicable)
}
