package extract

// pythonHelperScript is the helper executed inside the embedded Python
// runtime. It reads one file's source on stdin and writes JSON on stdout:
// either {"definitions": [...]} or {"error": {"message": ..., "line": ...}}
// for a syntax error. Bodies are re-serialized with ast.unparse, so
// comments, blank lines, quote style, and parenthesization are erased by
// construction — this is the precise normalization path.
const pythonHelperScript = `import ast
import json
import sys


def span(node):
    start = node.lineno
    for dec in getattr(node, "decorator_list", []):
        start = min(start, dec.lineno)
    return start, node.end_lineno


def main():
    src = sys.stdin.read()
    try:
        tree = ast.parse(src)
    except SyntaxError as exc:
        json.dump({"error": {"message": exc.msg or "invalid syntax",
                             "line": exc.lineno or 0}}, sys.stdout)
        return

    defs = []
    for node in tree.body:
        if isinstance(node, (ast.FunctionDef, ast.AsyncFunctionDef)):
            kind, name = "function", node.name
        elif isinstance(node, ast.ClassDef):
            kind, name = "class", node.name
        elif isinstance(node, ast.Assign):
            if len(node.targets) != 1 or not isinstance(node.targets[0], ast.Name):
                continue
            kind, name = "constant", node.targets[0].id
        elif isinstance(node, ast.AnnAssign):
            if not isinstance(node.target, ast.Name):
                continue
            kind, name = "type-alias", node.target.id
        else:
            continue

        start, end = span(node)
        defs.append({"kind": kind, "name": name,
                     "start_line": start, "end_line": end,
                     "body": ast.unparse(node)})

    json.dump({"definitions": defs}, sys.stdout)


if __name__ == "__main__":
    main()
`
