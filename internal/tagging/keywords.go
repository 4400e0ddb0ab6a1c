package tagging

// keywordTable lists the technology names README tags are drawn from.
var keywordTable = []string{
	"react", "angular", "vue", "python", "javascript", "typescript", "java",
	"c++", "c#", "go", "rust", "ruby", "php", "swift", "kotlin", "scala",
	"fastapi", "flask", "django", "node.js", "express", "spring", "docker",
	"kubernetes", "aws", "azure", "gcp", "terraform", "ansible", "jenkins",
	"ci/cd", "postgresql", "mysql", "mongodb", "redis", "kafka", "graphql",
	"rest", "api", "html", "css", "d3.js", "pytorch", "tensorflow", "scikit-learn",
}

var keywordSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(keywordTable))
	for _, k := range keywordTable {
		set[k] = struct{}{}
	}
	return set
}()

// Keywords returns a copy of the keyword table.
func Keywords() []string {
	out := make([]string, len(keywordTable))
	copy(out, keywordTable)
	return out
}

// IsKeyword reports whether s is in the keyword table. s must already be lowercase.
func IsKeyword(s string) bool {
	_, ok := keywordSet[s]
	return ok
}
