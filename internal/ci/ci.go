// Package ci provides helpers for discovering CI metadata.
package ci

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CIKind represents the type of CI.
type CIKind int

const (
	// CIUnknown indicates the CI provider could not be identified.
	CIUnknown CIKind = iota
	// CIJenkins identifies Jenkins environments.
	CIJenkins
	// CIGitHub identifies GitHub CI environments.
	CIGitHub
	// CIGitLab identifies GitLab CI environments.
	CIGitLab
	// CIBitbucket identifies Bitbucket CI environments.
	CIBitbucket
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// CIEnvironment captures the build metadata derived from environment variables.
type CIEnvironment struct {
	Kind          CIKind // Kind identifies the CI provider.
	CI            bool   // CI reports whether the execution runs inside a CI environment.
	CommitHash    string // CommitHash is the commit the build was started for.
	ReferenceName string // ReferenceName is the short reference or branch name.
	JobName       string // JobName identifies the job or pipeline the run belongs to.
	RunNumber     int    // RunNumber is the sequential build number, 0 when unknown.
	Workspace     string // Workspace is the checkout directory of the build.
}

// String returns the human-readable string representation of a CIKind.
func (c CIKind) String() string {
	switch c {
	case CIJenkins:
		return "jenkins"
	case CIGitHub:
		return "github"
	case CIGitLab:
		return "gitlab"
	case CIBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// ParseCIKind converts a string identifier into a CIKind value.
func ParseCIKind(raw string) (CIKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "jenkins":
		return CIJenkins, nil
	case "github":
		return CIGitHub, nil
	case "gitlab":
		return CIGitLab, nil
	case "bitbucket":
		return CIBitbucket, nil
	default:
		return CIUnknown, fmt.Errorf("unsupported ci kind %q", raw)
	}
}

// DetectCIKind attempts to infer the CI provider from well-known environment variables.
func DetectCIKind() CIKind {
	return detectCIKindWithLookup(os.Getenv)
}

func detectCIKindWithLookup(lookup LookupFunc) CIKind {
	if lookup == nil {
		lookup = os.Getenv
	}

	if lookup("JENKINS_URL") != "" || lookup("BUILD_TAG") != "" {
		return CIJenkins
	}
	if lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "" {
		return CIGitHub
	}
	if strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "" {
		return CIGitLab
	}
	if lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "" {
		return CIBitbucket
	}

	return CIUnknown
}

// GetCIDefaultEnvVars returns CI environment variables for the provided kind using the process environment.
func GetCIDefaultEnvVars(kind CIKind) (CIEnvironment, error) {
	return getCIDefaultEnvVars(kind, os.Getenv)
}

// getCIDefaultEnvVars resolves CI environment variables with the supplied lookup function.
func getCIDefaultEnvVars(kind CIKind, lookup LookupFunc) (CIEnvironment, error) {
	if lookup == nil {
		lookup = os.Getenv
	}

	switch kind {
	case CIJenkins:
		return extractJenkinsVariables(lookup), nil
	case CIGitHub:
		return extractGitHubVariables(lookup), nil
	case CIGitLab:
		return extractGitLabVariables(lookup), nil
	case CIBitbucket:
		return extractBitbucketVariables(lookup), nil
	default:
		return CIEnvironment{}, fmt.Errorf("unsupported ci kind: %s", kind)
	}
}

// extractJenkinsVariables builds the CIEnvironment from the variables Jenkins
// and its git plugin export.
func extractJenkinsVariables(lookup LookupFunc) CIEnvironment {
	return CIEnvironment{
		Kind:          CIJenkins,
		CI:            true,
		CommitHash:    lookup("GIT_COMMIT"),
		ReferenceName: strings.TrimPrefix(lookup("GIT_BRANCH"), "origin/"),
		JobName:       lookup("JOB_NAME"),
		RunNumber:     atoi(lookup("BUILD_NUMBER")),
		Workspace:     lookup("WORKSPACE"),
	}
}

// extractGitHubVariables builds the CIEnvironment from GitHub-specific variables.
// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func extractGitHubVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	job := lookup("GITHUB_REPOSITORY")
	if workflow := lookup("GITHUB_WORKFLOW"); workflow != "" {
		job = job + "/" + workflow
	}

	return CIEnvironment{
		Kind:          CIGitHub,
		CI:            ci,
		CommitHash:    lookup("GITHUB_SHA"),
		ReferenceName: lookup("GITHUB_REF_NAME"),
		JobName:       job,
		RunNumber:     atoi(lookup("GITHUB_RUN_NUMBER")),
		Workspace:     lookup("GITHUB_WORKSPACE"),
	}
}

// extractGitLabVariables builds the CIEnvironment from GitLab-specific variables.
// See https://docs.gitlab.com/ci/variables/predefined_variables/.
func extractGitLabVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	refName := lookup("CI_COMMIT_TAG")
	if refName == "" {
		refName = lookup("CI_COMMIT_REF_NAME")
	}

	job := lookup("CI_PROJECT_PATH")
	if name := lookup("CI_JOB_NAME"); name != "" {
		job = job + "/" + name
	}

	return CIEnvironment{
		Kind:          CIGitLab,
		CI:            ci,
		CommitHash:    lookup("CI_COMMIT_SHA"),
		ReferenceName: refName,
		JobName:       job,
		RunNumber:     atoi(lookup("CI_PIPELINE_IID")),
		Workspace:     lookup("CI_PROJECT_DIR"),
	}
}

// extractBitbucketVariables builds the CIEnvironment from Bitbucket-specific variables.
// See https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/.
func extractBitbucketVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	refName := lookup("BITBUCKET_TAG")
	if refName == "" {
		refName = lookup("BITBUCKET_BRANCH")
	}

	return CIEnvironment{
		Kind:          CIBitbucket,
		CI:            ci,
		CommitHash:    lookup("BITBUCKET_COMMIT"),
		ReferenceName: refName,
		JobName:       lookup("BITBUCKET_REPO_FULL_NAME"),
		RunNumber:     atoi(lookup("BITBUCKET_BUILD_NUMBER")),
		Workspace:     lookup("BITBUCKET_CLONE_DIR"),
	}
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
