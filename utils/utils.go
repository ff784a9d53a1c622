package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PrintPrettyJSON takes any struct or map and renders it as indented JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		fmt.Println("Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// EmailLocalPart returns the part of an email address before the '@', or the
// input unchanged when it is not an address. Used as the username fallback.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
