package parse

// Checks rules that concern more than one statement: break and continue may
// only appear in loop bodies. Function definitions are already restricted to
// the top level by the structurer.
func (ps *parser) check(c *Chunk) error {
	if err := ps.checkStmts(c.Stmts, false); err != nil {
		return err
	}
	for _, def := range c.Funcs {
		if err := ps.checkStmts(def.Body.Stmts, false); err != nil {
			return err
		}
	}
	return nil
}

func (ps *parser) checkStmts(stmts []Node, inLoop bool) error {
	for _, stmt := range stmts {
		var err error
		switch stmt := stmt.(type) {
		case *Break:
			if !inLoop {
				err = ps.errorf(stmt, "break outside of a loop")
			}
		case *Continue:
			if !inLoop {
				err = ps.errorf(stmt, "continue outside of a loop")
			}
		case *If:
			for _, br := range stmt.Branches {
				if err = ps.checkStmts(br.Body.Stmts, inLoop); err != nil {
					break
				}
			}
			if err == nil && stmt.Else != nil {
				err = ps.checkStmts(stmt.Else.Stmts, inLoop)
			}
		case *While:
			err = ps.checkStmts(stmt.Body.Stmts, true)
		case *For:
			err = ps.checkStmts(stmt.Body.Stmts, true)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
