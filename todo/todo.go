package todo

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Item is one checkbox line from a TODO.md.
type Item struct {
	Index  int    `json:"index"`
	LineNo int    `json:"-"`
	Done   bool   `json:"done"`
	Text   string `json:"text"`
}

const fileName = "TODO.md"

var itemRe = regexp.MustCompile(`^- \[( |x|X)\] (.*)$`)

func todoPath(repoPath string) string {
	return filepath.Join(repoPath, fileName)
}

// List parses the repository's TODO.md. A missing file is an empty list,
// not an error; lines that are not checkboxes are ignored.
func List(repoPath string) ([]Item, error) {
	body, err := ioutil.ReadFile(todoPath(repoPath))
	if err != nil {
		if os.IsNotExist(err) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("can't read with: %v", err)
	}
	items := []Item{}
	for lineNo, line := range strings.Split(string(body), "\n") {
		m := itemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, Item{
			Index:  len(items),
			LineNo: lineNo,
			Done:   m[1] == "x" || m[1] == "X",
			Text:   m[2],
		})
	}
	return items, nil
}

// Append adds an unchecked item to the end of TODO.md, creating the file
// with a header when it does not exist yet.
func Append(repoPath, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("todo text is required")
	}
	path := todoPath(repoPath)
	body, err := ioutil.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("can't read with: %v", err)
		}
		body = []byte("# TODO\n\n")
	}
	content := string(body)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += fmt.Sprintf("- [ ] %s\n", text)
	return ioutil.WriteFile(path, []byte(content), 0644)
}

// Update rewrites one item in place. done toggles the checkbox; a
// non-empty text replaces the item's text.
func Update(repoPath string, index int, done *bool, text string) error {
	path := todoPath(repoPath)
	body, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read with: %v", err)
	}
	lines := strings.Split(string(body), "\n")

	items, err := List(repoPath)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("no todo item with index %d", index)
	}
	item := items[index]
	if done != nil {
		item.Done = *done
	}
	if strings.TrimSpace(text) != "" {
		item.Text = strings.TrimSpace(text)
	}
	mark := " "
	if item.Done {
		mark = "x"
	}
	lines[item.LineNo] = fmt.Sprintf("- [%s] %s", mark, item.Text)
	return ioutil.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}
