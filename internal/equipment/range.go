package equipment

import (
	"fmt"
	"strconv"

	"github.com/rendis/batchml/pkg/schema"
)

// CheckRanges compares user-entered numeric values against the bounds the
// equipment declares. Values taken from defaults are not checked.
func CheckRanges(item *schema.WorkspaceItem, b *Binding) []schema.ValidationIssue {
	var issues []schema.ValidationIssue
	for _, p := range b.Parameters {
		if p.UserID == "" || (p.Min == nil && p.Max == nil) {
			continue
		}
		v, err := strconv.ParseFloat(p.Value.Text, 64)
		if err != nil {
			continue
		}
		if p.Min != nil && v < *p.Min {
			issues = append(issues, rangeIssue(item,
				fmt.Sprintf("Parameter %s value %s is below minimum %s", p.UserID, p.Value.Text, formatBound(*p.Min))))
		}
		if p.Max != nil && v > *p.Max {
			issues = append(issues, rangeIssue(item,
				fmt.Sprintf("Parameter %s value %s is above maximum %s", p.UserID, p.Value.Text, formatBound(*p.Max))))
		}
	}
	return issues
}

func rangeIssue(item *schema.WorkspaceItem, msg string) schema.ValidationIssue {
	return schema.ValidationIssue{
		Path:     "workspace_items[" + item.ID + "].processElementParameter",
		Code:     schema.ErrCodeParameterRange,
		Message:  msg,
		Severity: schema.SeverityWarning,
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
