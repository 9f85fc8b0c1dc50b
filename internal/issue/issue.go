// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	InterpreterNotFoundId Id = iota + 1
	VenvNotFoundId
	ActivationFailedId
	FrameworkInstallFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // external docs that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# No Python interpreter found!

We searched the PATH for a Python interpreter but none of the
configured candidates were found.

## Things you can try:
- Install Python 3 from your package manager or python.org
- Make sure the install location is on your PATH
- If your interpreter has an unusual name, add it to the config:
~~~cue
python: {
	interpreters: ["python3.13", "python3", "python"]
}
~~~`,
		docLinks: []HttpLink{"https://www.python.org/downloads/"},
	}

	venvNotFoundIssue = &Issue{
		id: VenvNotFoundId,
		mdMsg: `
# Virtual environment not found!

The activation script was not found at the expected location inside
the project's virtual environment directory.

## Things you can try:
- Create the virtual environment in the project directory:
~~~
$ python -m venv .venv
~~~
- If your environment lives elsewhere, point the config at it:
~~~cue
python: {
	venv_dir: "env"
}
~~~`,
		docLinks: []HttpLink{"https://docs.python.org/3/library/venv.html"},
	}

	activationFailedIssue = &Issue{
		id: ActivationFailedId,
		mdMsg: `
# Virtual environment activation failed!

The activation script was found but activating it did not take effect:
the interpreter still resolves outside the environment.

## Things you can try:
- Recreate the environment from scratch:
~~~
$ rm -rf .venv && python -m venv .venv
~~~
- Check that the activate script has not been edited by hand`,
		docLinks: []HttpLink{"https://docs.python.org/3/library/venv.html"},
	}

	frameworkInstallFailedIssue = &Issue{
		id: FrameworkInstallFailedId,
		mdMsg: `
# Framework install failed!

The web framework was missing and installing it with pip did not
succeed, so the application was not started.

## Things you can try:
- Re-run the install by hand inside the environment to see the full output:
~~~
$ python -m pip install streamlit
~~~
- Check your network connection and proxy settings
- Upgrade pip if the resolver is too old:
~~~
$ python -m pip install --upgrade pip
~~~`,
		docLinks: []HttpLink{"https://pip.pypa.io/en/stable/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded!

The config file exists but could not be parsed or validated.

## Things you can try:
- Check the CUE syntax of your config file
- Regenerate a known-good config:
~~~
$ appstart config init
~~~`,
	}

	catalog = map[Id]*Issue{
		InterpreterNotFoundId:    interpreterNotFoundIssue,
		VenvNotFoundId:           venvNotFoundIssue,
		ActivationFailedId:       activationFailedIssue,
		FrameworkInstallFailedId: frameworkInstallFailedIssue,
		ConfigLoadFailedId:       configLoadFailedIssue,
	}
)

// Get returns the catalog entry for the given id, or nil when the id
// has no registered guidance.
func Get(id Id) *Issue {
	return catalog[id]
}

// Ids returns all registered issue ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(catalog)
	slices.Sort(ids)
	return ids
}
