package watch

import (
	"regexp"
	"strings"

	"testwatch/internal/testpath"
)

// maxExtractedFiles caps how many candidate paths are handed to the analyzer
const maxExtractedFiles = 20

var pathRe = regexp.MustCompile(`[\w@][\w./@-]*\.(?:ts|tsx|js|jsx|vue)\b`)

// ExtractFiles pulls candidate test-file and app-file paths out of buffered
// runner output. Paths under dependency directories are dropped.
func ExtractFiles(output string) (testFiles, appFiles []string) {
	seen := make(map[string]bool)

	for _, match := range pathRe.FindAllString(output, -1) {
		match = strings.TrimPrefix(match, "./")
		if seen[match] || testpath.InIgnoredDir(match) {
			continue
		}
		seen[match] = true

		if testpath.IsTestFile(match) {
			if len(testFiles) < maxExtractedFiles {
				testFiles = append(testFiles, match)
			}
			continue
		}
		if testpath.IsConfigFile(match) {
			continue
		}
		if len(appFiles) < maxExtractedFiles {
			appFiles = append(appFiles, match)
		}
	}

	return testFiles, appFiles
}
