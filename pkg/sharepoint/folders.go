package sharepoint

import "fmt"

// baseFolders is the fixed folder taxonomy created on every project site, in
// numeric order.
var baseFolders = []string{
	"01 - Project Planning",
	"02 - Financial Documents",
	"03 - Legal & Compliance",
	"04 - Construction Documents",
	"05 - Marketing & Leasing",
	"06 - Environmental Reports",
	"07 - Permits & Approvals",
	"08 - Team Communications",
}

// DefaultFolderStructure returns the base taxonomy plus one application
// folder per funding source, numbered continuing from the fixed set.
func DefaultFolderStructure(fundingSources []string) []string {
	folders := make([]string, 0, len(baseFolders)+len(fundingSources))
	folders = append(folders, baseFolders...)
	for i, source := range fundingSources {
		folders = append(folders, fmt.Sprintf("%02d - %s Application", i+len(baseFolders)+1, source))
	}
	return folders
}
