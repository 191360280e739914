package todo

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func tempRepo(t *testing.T, content string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "todorepo")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	if content != "" {
		if err := ioutil.WriteFile(filepath.Join(dir, "TODO.md"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestList(t *testing.T) {
	Convey("Checkbox lines parse, everything else is ignored", t, func() {
		repo := tempRepo(t, "# TODO\n\nsome prose\n- [ ] write tests\n- [x] ship it\n- [X] caps count too\n* [ ] wrong bullet\n")
		items, err := List(repo)
		So(err, ShouldBeNil)
		So(items, ShouldHaveLength, 3)
		So(items[0].Text, ShouldEqual, "write tests")
		So(items[0].Done, ShouldBeFalse)
		So(items[1].Done, ShouldBeTrue)
		So(items[2].Done, ShouldBeTrue)
		So(items[2].Index, ShouldEqual, 2)
	})

	Convey("A missing TODO.md is an empty list", t, func() {
		items, err := List(tempRepo(t, ""))
		So(err, ShouldBeNil)
		So(items, ShouldBeEmpty)
	})
}

func TestAppend(t *testing.T) {
	Convey("Append creates the file with a header", t, func() {
		repo := tempRepo(t, "")
		So(Append(repo, "first task"), ShouldBeNil)

		body, err := ioutil.ReadFile(filepath.Join(repo, "TODO.md"))
		So(err, ShouldBeNil)
		So(string(body), ShouldEqual, "# TODO\n\n- [ ] first task\n")
	})

	Convey("Append extends an existing file", t, func() {
		repo := tempRepo(t, "# TODO\n- [ ] old\n")
		So(Append(repo, "new task"), ShouldBeNil)

		items, err := List(repo)
		So(err, ShouldBeNil)
		So(items, ShouldHaveLength, 2)
		So(items[1].Text, ShouldEqual, "new task")
	})

	Convey("Blank text is rejected", t, func() {
		So(Append(tempRepo(t, ""), "   "), ShouldNotBeNil)
	})
}

func TestUpdate(t *testing.T) {
	content := "# TODO\n\n- [ ] write tests\n- [x] ship it\n"

	Convey("Toggling done rewrites only the checkbox", t, func() {
		repo := tempRepo(t, content)
		done := true
		So(Update(repo, 0, &done, ""), ShouldBeNil)

		items, _ := List(repo)
		So(items[0].Done, ShouldBeTrue)
		So(items[0].Text, ShouldEqual, "write tests")
		So(items[1].Done, ShouldBeTrue)
	})

	Convey("Text edits keep the checkbox state", t, func() {
		repo := tempRepo(t, content)
		So(Update(repo, 1, nil, "ship it twice"), ShouldBeNil)

		items, _ := List(repo)
		So(items[1].Text, ShouldEqual, "ship it twice")
		So(items[1].Done, ShouldBeTrue)
	})

	Convey("Out of range indexes are errors", t, func() {
		repo := tempRepo(t, content)
		So(Update(repo, 5, nil, "x"), ShouldNotBeNil)
		So(Update(repo, -1, nil, "x"), ShouldNotBeNil)
	})

	Convey("Surrounding prose survives the rewrite", t, func() {
		repo := tempRepo(t, content)
		done := true
		So(Update(repo, 0, &done, ""), ShouldBeNil)

		body, _ := ioutil.ReadFile(filepath.Join(repo, "TODO.md"))
		So(string(body), ShouldStartWith, "# TODO\n\n")
	})
}
