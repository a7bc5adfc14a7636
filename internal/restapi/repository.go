package restapi

import "strings"

// StagingPrefix marks a repository id that addresses a staging repository.
// Writes then go through the staging deploy endpoint, reads through the
// regular content endpoint of the underlying repository.
const StagingPrefix = "@staging:"

func readOnlyPrefix(repo string) string {
	repo = strings.TrimPrefix(repo, StagingPrefix)
	return "/service/local/repositories/" + repo + "/content"
}

func readWritePrefix(repo string) string {
	if id, ok := strings.CutPrefix(repo, StagingPrefix); ok {
		return "/service/local/staging/deployByRepositoryId/" + id
	}
	return "/service/local/repositories/" + repo + "/content"
}
