// Package shell is the entry point for running fsl code: scripts, code given
// with -c, the interactive REPL and the watch mode.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"src.fsl.sh/pkg/diag"
	"src.fsl.sh/pkg/logutil"
	"src.fsl.sh/pkg/prog"
	"src.fsl.sh/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It is always suitable to run, so it
// should be the last program in a composite.
type Program struct {
	codeInArg   bool
	compileOnly bool
	ast         bool
	watch       bool
	journal     string
	noJournal   bool
	query       journalQuery
	json        *bool
	config      *string
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.codeInArg, "c", false, "take first argument as code to execute")
	fs.BoolVar(&p.compileOnly, "compileonly", false, "parse but do not execute")
	fs.BoolVar(&p.ast, "ast", false, "with -compileonly, print the parsed tree")
	fs.BoolVar(&p.watch, "watch", false, "run the script again whenever it changes")
	fs.StringVar(&p.journal, "journal", "",
		"path to the run journal; overrides the journal in the configuration")
	fs.BoolVar(&p.noJournal, "nojournal", false, "do not record runs in the journal")
	p.query.registerFlags(fs)
	p.json = fs.JSON()
	p.config = fs.Config()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if p.codeInArg && len(args) == 0 {
		return prog.BadUsage("-c requires an argument")
	}
	if p.watch && (p.codeInArg || len(args) == 0) {
		return prog.BadUsage("-watch requires a script file")
	}
	if p.ast && !p.compileOnly {
		return prog.BadUsage("-ast can only be used with -compileonly")
	}
	if *p.json && !p.compileOnly && !p.query.active() {
		return prog.BadUsage("-json can only be used with -compileonly or a journal query")
	}
	if err := p.query.validate(); err != nil {
		return err
	}
	diag.SetStyled(sys.AllTerminals(fds[2]))

	cfg, err := loadConfig(*p.config)
	if err != nil {
		return err
	}
	journal := cfg.Journal
	if p.journal != "" {
		journal = p.journal
	}
	if p.query.active() {
		var script string
		if len(args) > 0 {
			if script, err = sourceName(args[0], p.codeInArg); err != nil {
				return err
			}
		}
		return p.query.run(fds[1], journal, script, *p.json)
	}
	if p.noJournal || p.compileOnly {
		journal = ""
	}
	rt, err := InitRuntime(fds, cfg, journal)
	if err != nil {
		return err
	}
	defer rt.Close(fds[2])

	if len(args) > 0 {
		scfg := &scriptCfg{
			Cmd: p.codeInArg, CompileOnly: p.compileOnly, AST: p.ast, JSON: *p.json}
		if p.watch {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return prog.Exit(watchScript(ctx, rt.NewEvaler, fds, args, scfg))
		}
		return prog.Exit(script(rt.Evaler, fds, args, scfg))
	}
	if p.compileOnly {
		return prog.BadUsage("-compileonly requires a script or -c")
	}
	return prog.Exit(Interact(fds, &InteractConfig{Evaler: rt.Evaler}))
}

func warn(fds [3]*os.File, format string, args ...any) {
	fmt.Fprintf(fds[2], "Warning: "+format+"\n", args...)
}
