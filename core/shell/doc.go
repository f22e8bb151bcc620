package shell

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// RedirectDoc is the document form of a Redirection.
type RedirectDoc struct {
	Path string `json:"path" validate:"required"`
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=truncate append"`
}

// Doc is the YAML/JSON form of a tree. A leaf sets exactly one of Argv or
// Command; a compound sets Op, Left and Right.
type Doc struct {
	Op    string `json:"op,omitempty" validate:"omitempty,oneof=sequential parallel pipe and_if_failed and_if_succeeded"`
	Left  *Doc   `json:"left,omitempty"`
	Right *Doc   `json:"right,omitempty"`

	// Command is split into words with POSIX shell quoting rules.
	Command string       `json:"command,omitempty"`
	Argv    []string     `json:"argv,omitempty"`
	Stdin   *RedirectDoc `json:"stdin,omitempty"`
	Stdout  *RedirectDoc `json:"stdout,omitempty"`
	Stderr  *RedirectDoc `json:"stderr,omitempty"`
}

// File is a tree document on disk: either a single tree or a list of them
// under "trees".
type File struct {
	Trees []*Doc `json:"trees,omitempty"`
	Doc
}

func (d *Doc) isLeaf() bool {
	return d.Command != "" || len(d.Argv) > 0 || d.Stdin != nil || d.Stdout != nil || d.Stderr != nil
}

func (d *Doc) isEmpty() bool {
	return d.Op == "" && d.Left == nil && d.Right == nil && !d.isLeaf()
}

// Validate checks field values; shape is checked by FromDoc.
func (d *Doc) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	return validate.Struct(d)
}

// FromDoc converts a validated document into a tree.
func FromDoc(d *Doc) (Node, error) {
	if d == nil {
		return nil, errors.New("missing tree")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return fromDoc(d, "$")
}

func fromDoc(d *Doc, at string) (Node, error) {
	if d == nil {
		return nil, fmt.Errorf("%s: missing node", at)
	}

	if d.Op != "" {
		if d.isLeaf() {
			return nil, fmt.Errorf("%s: op %q can't be combined with command fields", at, d.Op)
		}
		op, ok := ParseOperator(d.Op)
		if !ok {
			return nil, fmt.Errorf("%s: unknown op %q", at, d.Op)
		}
		left, err := fromDoc(d.Left, at+".left")
		if err != nil {
			return nil, err
		}
		right, err := fromDoc(d.Right, at+".right")
		if err != nil {
			return nil, err
		}
		return &Compound{Op: op, Left: left, Right: right}, nil
	}

	if d.Left != nil || d.Right != nil {
		return nil, fmt.Errorf("%s: left/right require op", at)
	}

	var argv []string
	switch {
	case d.Command != "" && len(d.Argv) > 0:
		return nil, fmt.Errorf("%s: set only one of command and argv", at)
	case d.Command != "":
		words, err := shlex.Split(d.Command, true)
		if err != nil {
			return nil, fmt.Errorf("%s.command: %w", at, err)
		}
		argv = words
	default:
		argv = d.Argv
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%s: empty command", at)
	}

	simple := &Simple{Verb: argv[0], Args: append([]string(nil), argv[1:]...)}
	var err error
	if simple.Stdin, err = fromRedirectDoc(d.Stdin, at+".stdin"); err != nil {
		return nil, err
	}
	if simple.Stdout, err = fromRedirectDoc(d.Stdout, at+".stdout"); err != nil {
		return nil, err
	}
	if simple.Stderr, err = fromRedirectDoc(d.Stderr, at+".stderr"); err != nil {
		return nil, err
	}
	return simple, nil
}

func fromRedirectDoc(r *RedirectDoc, at string) (*Redirection, error) {
	if r == nil {
		return nil, nil
	}
	out := &Redirection{Path: r.Path}
	switch r.Mode {
	case "", "truncate":
		out.Mode = Truncate
	case "append":
		out.Mode = Append
	default:
		return nil, fmt.Errorf("%s.mode: unknown mode %q", at, r.Mode)
	}
	return out, nil
}

// ToDoc converts a tree into its document form. Leaves always use Argv.
func ToDoc(n Node) *Doc {
	switch n := n.(type) {
	case *Simple:
		return &Doc{
			Argv:   n.Argv(),
			Stdin:  toRedirectDoc(n.Stdin),
			Stdout: toRedirectDoc(n.Stdout),
			Stderr: toRedirectDoc(n.Stderr),
		}
	case *Compound:
		return &Doc{
			Op:    n.Op.String(),
			Left:  ToDoc(n.Left),
			Right: ToDoc(n.Right),
		}
	default:
		return nil
	}
}

func toRedirectDoc(r *Redirection) *RedirectDoc {
	if r == nil {
		return nil
	}
	return &RedirectDoc{Path: r.Path, Mode: r.Mode.String()}
}

// Encode serializes a tree as YAML.
func Encode(n Node) ([]byte, error) {
	d := ToDoc(n)
	if d == nil {
		return nil, fmt.Errorf("can't encode %T", n)
	}
	return yaml.Marshal(d)
}

// Decode parses a single YAML or JSON tree.
func Decode(data []byte) (Node, error) {
	var d Doc
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, err
	}
	return FromDoc(&d)
}

// DecodeFile parses a tree document holding one tree or a "trees" list.
func DecodeFile(data []byte) ([]Node, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, err
	}

	docs := f.Trees
	switch {
	case len(docs) > 0 && !f.Doc.isEmpty():
		return nil, errors.New("a document can't hold both trees and a single tree")
	case len(docs) == 0 && f.Doc.isEmpty():
		return nil, errors.New("document holds no trees")
	case len(docs) == 0:
		docs = []*Doc{&f.Doc}
	}

	var out []Node
	for i, d := range docs {
		n, err := FromDoc(d)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Load reads a tree document from the filesystem.
func Load(fs afero.Fs, path string) ([]Node, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	trees, err := DecodeFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trees, nil
}
