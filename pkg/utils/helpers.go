package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// ValidateOwner rejects names GitHub does not allow for users and
// organizations.
func ValidateOwner(owner string) error {
	if !ownerPattern.MatchString(owner) {
		return fmt.Errorf("invalid GitHub owner %q", owner)
	}
	return nil
}

func ParseGitHubURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", err
	}
	if u.Host != "" && !strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "github.com") {
		return "", "", fmt.Errorf("not a GitHub repository URL: %s", repoURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository URL")
	}

	if err := ValidateOwner(parts[0]); err != nil {
		return "", "", err
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

func IsValidGitHubURL(repoURL string) bool {
	_, _, err := ParseGitHubURL(repoURL)
	return err == nil
}

// ParseRepoRef accepts either "owner/name" or a GitHub repository URL.
func ParseRepoRef(ref string) (owner, name string, err error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "github.com/") {
		if !strings.Contains(ref, "://") {
			ref = "https://" + ref
		}
		return ParseGitHubURL(ref)
	}

	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository reference %q, want owner/name", ref)
	}
	if err := ValidateOwner(parts[0]); err != nil {
		return "", "", err
	}
	return parts[0], parts[1], nil
}
