package upstream

import "testing"

func TestBuildJQL(t *testing.T) {
	got := BuildJQL("payment outage")
	want := `text ~ "payment outage" ORDER BY updated DESC`
	if got != want {
		t.Fatalf("BuildJQL() = %q, want %q", got, want)
	}
}

func TestBuildJQL_EscapesQuotes(t *testing.T) {
	got := BuildJQL(`say "hello"`)
	want := `text ~ "say \"hello\"" ORDER BY updated DESC`
	if got != want {
		t.Fatalf("BuildJQL() = %q, want %q", got, want)
	}
}

func TestBuildCQL(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		spaceKey string
		want     string
	}{
		{
			name:  "no space filter",
			query: "deploy guide",
			want:  `(text ~ "deploy guide" OR title ~ "deploy guide")`,
		},
		{
			name:     "space filter appended",
			query:    "deploy guide",
			spaceKey: "ENG",
			want:     `(text ~ "deploy guide" OR title ~ "deploy guide") AND space = "ENG"`,
		},
		{
			name:  "backslash escaped before quote",
			query: `tricky\"`,
			want:  `(text ~ "tricky\\\"" OR title ~ "tricky\\\"")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildCQL(tt.query, tt.spaceKey); got != tt.want {
				t.Fatalf("BuildCQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if got := JiraSearchPath("s1"); got != "/ex/jira/s1/rest/api/3/search" {
		t.Fatalf("JiraSearchPath() = %q", got)
	}
	if got := JiraIssuePath("s1", "PROJ-7"); got != "/ex/jira/s1/rest/api/3/issue/PROJ-7" {
		t.Fatalf("JiraIssuePath() = %q", got)
	}
	if got := ConfluenceSpacesPath("s1"); got != "/ex/confluence/s1/wiki/api/v2/spaces" {
		t.Fatalf("ConfluenceSpacesPath() = %q", got)
	}
	if got := ConfluenceContentPath("s1", "12345"); got != "/ex/confluence/s1/rest/api/content/12345" {
		t.Fatalf("ConfluenceContentPath() = %q", got)
	}
}

func TestJiraSearchQuery(t *testing.T) {
	q := JiraSearchQuery("outage", 25)
	if q.Get("maxResults") != "25" {
		t.Fatalf("maxResults = %q", q.Get("maxResults"))
	}
	if q.Get("jql") != `text ~ "outage" ORDER BY updated DESC` {
		t.Fatalf("jql = %q", q.Get("jql"))
	}
	if q.Get("fields") == "" {
		t.Fatal("fields must be pinned for search hits")
	}
}

func TestConfluenceSearchQuery(t *testing.T) {
	q := ConfluenceSearchQuery("outage", "ENG", 10)
	if q.Get("limit") != "10" || q.Get("expand") != "space,version" {
		t.Fatalf("unexpected query: %v", q)
	}
	if q.Get("cql") != `(text ~ "outage" OR title ~ "outage") AND space = "ENG"` {
		t.Fatalf("cql = %q", q.Get("cql"))
	}
}
