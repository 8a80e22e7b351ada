package eval

import (
	"path/filepath"
	"strings"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/eval/errs"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/parse"
)

type pathOp struct {
	diag.Ranging
	absolute bool
	segments [][]valueOp
}

func (cp *compiler) pathOp(n *parse.PathExpr) *pathOp {
	op := &pathOp{Ranging: n.Range(), absolute: n.Absolute}
	for _, seg := range n.Segments {
		op.segments = append(op.segments, cp.valueOps(seg))
	}
	return op
}

func (op *pathOp) exec(fm *Frame) (any, error) {
	p, err := op.eval(fm)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Evaluates the path. An absolute path starts at the filesystem root. A path
// whose first segment is a single Path value starts at that path. Other paths
// start at the root of the sandbox.
func (op *pathOp) eval(fm *Frame) (vals.Path, error) {
	segments := op.segments
	var base string
	switch {
	case op.absolute:
		base = "/"
	case len(segments) > 0 && len(segments[0]) == 1:
		v, err := segments[0][0].exec(fm)
		if err != nil {
			return "", err
		}
		if p, ok := v.(vals.Path); ok {
			base = string(p)
			segments = segments[1:]
			break
		}
		name, err := segmentName(fm, segments[0][0], v)
		if err != nil {
			return "", err
		}
		base = filepath.Join(fm.Sandbox().Root, name)
		segments = segments[1:]
	default:
		base = fm.Sandbox().Root
	}

	parts := []string{base}
	for _, seg := range segments {
		var sb strings.Builder
		for _, partOp := range seg {
			v, err := partOp.exec(fm)
			if err != nil {
				return "", err
			}
			if p, ok := v.(vals.Path); ok && len(seg) == 1 {
				sb.WriteString(string(p))
				continue
			}
			name, err := segmentName(fm, partOp, v)
			if err != nil {
				return "", err
			}
			sb.WriteString(name)
		}
		parts = append(parts, sb.String())
	}
	return vals.Path(filepath.Join(parts...)), nil
}

// Converts the value of a part of a path segment to a string.
func segmentName(fm *Frame, r diag.Ranger, v any) (string, error) {
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case float64:
		s = vals.FormatNum(v)
	default:
		return "", fm.errorp(r, errs.TypeError{
			What: "path segment", Want: "string, number or path", Got: vals.Kind(v)})
	}
	if strings.ContainsAny(s, "/\n") {
		return "", fm.errorp(r, errs.BadValue{
			What: "path segment", Valid: "a name without '/' or newline", Actual: vals.Repr(s)})
	}
	return s, nil
}

// READ, PATH, EXISTS, ISFILE and ISDIR.
type fileQueryOp struct {
	diag.Ranging
	cmd  string
	path *pathOp
}

func (cp *compiler) fileQueryOp(n *parse.FileQuery) valueOp {
	return &fileQueryOp{n.Range(), n.Cmd, cp.pathOp(n.Path)}
}

func (op *fileQueryOp) exec(fm *Frame) (any, error) {
	p, err := op.path.eval(fm)
	if err != nil {
		return nil, err
	}
	path, sb := string(p), fm.Sandbox()
	var v any
	switch op.cmd {
	case "PATH":
		return p, nil
	case "READ":
		v, err = sb.ReadFile(path)
	case "EXISTS":
		v, err = sb.Exists(path)
	case "ISFILE":
		v, err = sb.IsFile(path)
	case "ISDIR":
		v, err = sb.IsDir(path)
	}
	if err != nil {
		return nil, fm.errorp(op, err)
	}
	return v, nil
}

// DELETE, MKDIR and MKDIRS.
type fileCmdOp struct {
	diag.Ranging
	cmd  string
	path *pathOp
}

func (cp *compiler) fileCmdOp(n *parse.FileCmd) valueOp {
	return &fileCmdOp{n.Range(), n.Cmd, cp.pathOp(n.Path)}
}

func (op *fileCmdOp) exec(fm *Frame) (any, error) {
	p, err := op.path.eval(fm)
	if err != nil {
		return nil, err
	}
	path, sb := string(p), fm.Sandbox()
	var fsOp fsop.Operation
	switch op.cmd {
	case "DELETE":
		fsOp = fsop.NewDelete(sb, fm.tracker, path)
	case "MKDIR":
		fsOp = fsop.NewMkdir(sb, path)
	case "MKDIRS":
		fsOp = fsop.NewMkdirs(sb, path)
	}
	return nil, fm.errorp(op, fm.Perform(fsOp))
}

// WRITE, APPEND, COPY, MOVE and RENAME.
type dualCmdOp struct {
	diag.Ranging
	cmd string
	// A *pathOp for COPY, MOVE and RENAME.
	arg valueOp
	// A *pathOp except for RENAME.
	target valueOp
}

func (cp *compiler) dualCmdOp(n *parse.DualCmd) valueOp {
	op := &dualCmdOp{Ranging: n.Range(), cmd: n.Cmd}
	op.arg = cp.valueOp(n.Arg)
	op.target = cp.valueOp(n.Target)
	return op
}

func (op *dualCmdOp) exec(fm *Frame) (any, error) {
	arg, err := op.arg.exec(fm)
	if err != nil {
		return nil, err
	}
	target, err := op.target.exec(fm)
	if err != nil {
		return nil, err
	}
	sb := fm.Sandbox()
	var fsOp fsop.Operation
	switch op.cmd {
	case "WRITE":
		fsOp = fsop.NewWrite(sb, string(target.(vals.Path)), vals.ToString(arg))
	case "APPEND":
		fsOp = fsop.NewAppend(sb, string(target.(vals.Path)), vals.ToString(arg))
	case "COPY":
		fsOp = fsop.NewCopy(sb, string(arg.(vals.Path)), string(target.(vals.Path)))
	case "MOVE":
		fsOp = fsop.NewMove(sb, string(arg.(vals.Path)), string(target.(vals.Path)))
	case "RENAME":
		name, ok := target.(string)
		if !ok {
			return nil, fm.errorp(op.target, errs.TypeError{
				What: "new name", Want: "string", Got: vals.Kind(target)})
		}
		fsOp, err = fsop.NewRename(sb, string(arg.(vals.Path)), name)
		if err != nil {
			return nil, fm.errorp(op.target, err)
		}
	}
	return nil, fm.errorp(op, fm.Perform(fsOp))
}
