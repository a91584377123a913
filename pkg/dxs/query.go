package dxs

import (
	"net/url"
	"strings"
)

const (
	DXS_ENDPOINT    = "/api/dxs.json"
	DXS_QUERY_PARAM = "dxsEntries"
)

// BuildQuery repeats the dxsEntries parameter once per id, keeping the id order.
func BuildQuery(ids IdSet) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(DXS_QUERY_PARAM)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(id))
	}
	return sb.String()
}
