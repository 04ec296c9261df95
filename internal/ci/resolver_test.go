package ci

import "testing"

func TestResolveWithoutCI(t *testing.T) {
	explicit := Resolution{JobName: "local", Revision: "HEAD"}

	res := resolveWithLookup(nil, explicit, mapLookup(nil))
	if res != explicit {
		t.Fatalf("expected explicit values only, got %+v", res)
	}
	if res.Hydrated {
		t.Fatalf("expected no hydration outside of CI")
	}
}

func TestResolveHydratesFromJenkins(t *testing.T) {
	env := map[string]string{
		"JENKINS_URL":  "https://ci.example.com/",
		"GIT_COMMIT":   "abcdef",
		"JOB_NAME":     "firmware",
		"BUILD_NUMBER": "12",
		"WORKSPACE":    "/ws/firmware",
	}

	res := resolveWithLookup(nil, Resolution{}, mapLookup(env))
	if !res.Hydrated || res.Kind != CIJenkins {
		t.Fatalf("expected hydrated jenkins resolution, got %+v", res)
	}
	if res.JobName != "firmware" || res.Revision != "abcdef" || res.Workspace != "/ws/firmware" {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.RunNumber != 12 {
		t.Fatalf("expected run number 12, got %d", res.RunNumber)
	}
}

func TestResolvePrefersExplicitValues(t *testing.T) {
	env := map[string]string{
		"GITHUB_REPOSITORY": "octocat/hello-world",
		"GITHUB_SHA":        "abcdef",
		"GITHUB_RUN_NUMBER": "5",
	}
	explicit := Resolution{JobName: "nightly", Revision: "v1.0", RunNumber: 9}

	res := resolveWithLookup(nil, explicit, mapLookup(env))
	if res.JobName != "nightly" || res.Revision != "v1.0" || res.RunNumber != 9 {
		t.Fatalf("explicit values must win, got %+v", res)
	}
	if res.Kind != CIGitHub {
		t.Fatalf("expected kind github, got %v", res.Kind)
	}
}
