package upstream

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// jiraSearchFields is the fixed field list returned for issue search hits.
const jiraSearchFields = "summary,description,issuetype,status,assignee,reporter,created,updated,priority"

// jiraIssueExpand is the full expansion requested for a single issue fetch.
const jiraIssueExpand = "renderedFields,names,schema,transitions,operations,editmeta,changelog"

// API gateway paths. Every call goes through api.atlassian.com/ex/<product>/<cloudid>.

func JiraSearchPath(siteID string) string {
	return fmt.Sprintf("/ex/jira/%s/rest/api/3/search", siteID)
}

func JiraIssuePath(siteID, issueKey string) string {
	return fmt.Sprintf("/ex/jira/%s/rest/api/3/issue/%s", siteID, issueKey)
}

func ConfluenceSpacesPath(siteID string) string {
	return fmt.Sprintf("/ex/confluence/%s/wiki/api/v2/spaces", siteID)
}

func ConfluenceSearchPath(siteID string) string {
	return fmt.Sprintf("/ex/confluence/%s/rest/api/content/search", siteID)
}

func ConfluenceContentPath(siteID, contentID string) string {
	return fmt.Sprintf("/ex/confluence/%s/rest/api/content/%s", siteID, contentID)
}

// JiraSearchQuery builds the query parameters for a keyword issue search.
func JiraSearchQuery(query string, maxResults int) url.Values {
	return url.Values{
		"jql":        {BuildJQL(query)},
		"maxResults": {strconv.Itoa(maxResults)},
		"fields":     {jiraSearchFields},
	}
}

// JiraIssueQuery builds the query parameters for a single issue fetch.
func JiraIssueQuery() url.Values {
	return url.Values{"expand": {jiraIssueExpand}}
}

// ConfluenceSearchQuery builds the query parameters for a keyword+title
// content search, optionally scoped to one space.
func ConfluenceSearchQuery(query, spaceKey string, limit int) url.Values {
	return url.Values{
		"cql":    {BuildCQL(query, spaceKey)},
		"limit":  {strconv.Itoa(limit)},
		"expand": {"space,version"},
	}
}

// ConfluenceSpacesQuery lists up to 100 spaces per call.
func ConfluenceSpacesQuery() url.Values {
	return url.Values{"limit": {"100"}}
}

// ConfluenceContentQuery builds the expansion for a single content fetch.
func ConfluenceContentQuery() url.Values {
	return url.Values{"expand": {"body.storage,space,version"}}
}

// BuildJQL turns a raw keyword string into a text search ordered by recency.
func BuildJQL(query string) string {
	return fmt.Sprintf(`text ~ "%s" ORDER BY updated DESC`, escapeQuoted(query))
}

// BuildCQL turns a raw keyword string into a text-or-title search, ANDed
// with a space filter when spaceKey is set.
func BuildCQL(query, spaceKey string) string {
	q := escapeQuoted(query)
	parts := []string{fmt.Sprintf(`(text ~ "%s" OR title ~ "%s")`, q, q)}
	if spaceKey != "" {
		parts = append(parts, fmt.Sprintf(`space = "%s"`, escapeQuoted(spaceKey)))
	}
	return strings.Join(parts, " AND ")
}

// escapeQuoted keeps user input from breaking out of the quoted JQL/CQL
// string literal.
func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
