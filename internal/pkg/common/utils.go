package common

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateID 生成帶前綴的短 ID，例如 mp_1a2b3c4d
func GenerateID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// WriteErrorResponse 寫入錯誤響應
func WriteErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
