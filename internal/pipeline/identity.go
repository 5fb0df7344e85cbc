package pipeline

import (
	"fmt"
	"strings"

	"github.com/logai/mergerelay/internal/model"
)

const shortSHALength = 8

// BuildEventID derives the deterministic event identifier. The same logical
// merge (provider, repository, PR number, commit) always yields the same ID,
// which is the only idempotence mechanism of the relay: downstream consumers
// use it to deduplicate webhook redeliveries.
func BuildEventID(provider model.Provider, repository string, prNumber int, commitSHA string) string {
	if len(commitSHA) > shortSHALength {
		commitSHA = commitSHA[:shortSHALength]
	}
	id := fmt.Sprintf("%s_%s_%d_%s", provider, repository, prNumber, commitSHA)
	return strings.ReplaceAll(id, "/", "_")
}
