package file

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/typhfeng/projecttrack"
)

// File persists the latest dashboard snapshot as pretty-printed JSON,
// replacing the previous one. The write goes through a temp file so a
// crash never leaves a half-written document behind.
type File struct {
	DashboardFile string
}

func (f *File) Start() error {
	return nil
}

func (f *File) Stop() error {
	return nil
}

func (f *File) Send(dashboard *projecttrack.Dashboard) error {
	if f.DashboardFile == "" {
		return nil
	}
	body, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return fmt.Errorf("can't marshal with: %v", err)
	}
	dir := filepath.Dir(f.DashboardFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(dir, ".dashboard-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(body, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.DashboardFile)
}
