package resources

import (
	"fmt"
	"path"

	"github.com/evanw/esbuild/pkg/api"
)

// Minify shrinks a .js or .css asset. Other files are returned unchanged.
func Minify(name string, src []byte) ([]byte, error) {
	var loader api.Loader
	switch path.Ext(name) {
	case ".js":
		loader = api.LoaderJS
	case ".css":
		loader = api.LoaderCSS
	default:
		return src, nil
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        name,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Target:            api.ES2020,
	})
	if len(result.Errors) > 0 {
		var errMsg string
		for _, err := range result.Errors {
			line, col := 0, 0
			if err.Location != nil {
				line, col = err.Location.Line, err.Location.Column
			}
			errMsg += fmt.Sprintf("%s:%d:%d: %s\n", name, line, col, err.Text)
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", errMsg)
	}
	return result.Code, nil
}
