package spotify

import (
	"fmt"
	"strings"
)

// IDFromURI extracts the id from a "spotify:track:<id>" style URI.
func IDFromURI(uri string) (string, error) {
	segments := strings.Split(uri, ":")
	if len(segments) != 3 || segments[0] != "spotify" || segments[2] == "" {
		return "", fmt.Errorf("bad uri format (%s)", uri)
	}
	return segments[2], nil
}
