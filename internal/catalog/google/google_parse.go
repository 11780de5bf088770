package google

import (
	"fmt"
	"strings"

	"gastos/internal/core"
)

// parseCategories converts a values matrix (as returned by the Sheets API)
// into a catalog. The first row must name the ID, Name and Color columns;
// the color may be a hex value or a palette name such as "blue".
func parseCategories(values [][]interface{}) (core.Catalog, error) {
	if len(values) == 0 {
		return core.NewCatalog(nil)
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "ID")
	colName := indexOf(headers, "Name")
	colColor := indexOf(headers, "Color")
	if colID == -1 || colName == -1 {
		missing := make([]string, 0, 2)
		if colID == -1 {
			missing = append(missing, "ID")
		}
		if colName == -1 {
			missing = append(missing, "Name")
		}
		return core.Catalog{}, fmt.Errorf("unexpected categories header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	cats := make([]core.Category, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id := safeGet(row, colID)
		if id == "" {
			continue
		}
		color := safeGet(row, colColor)
		if !strings.HasPrefix(color, "#") {
			color = core.ColorHex(color)
		}
		cats = append(cats, core.Category{ID: id, Name: safeGet(row, colName), Color: color})
	}
	return core.NewCatalog(cats)
}
