package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"atlas/internal/lexer"
	"atlas/internal/runtime"
	"atlas/internal/token"
)

// replCmd is an interactive session backed by runtime.Runtime, so a single
// long-lived program state persists across lines the same way the
// teacher's cmd_repl_compiled.go holds one *vm.VM across its scan loop.
// Grounded on that file's buffering/continuation logic (isInputReady),
// generalized to work for either engine and switched from bufio.Scanner to
// github.com/chzyer/readline for history and line editing.
type replCmd struct {
	engine string
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive Atlas session" }
func (*replCmd) Usage() string    { return "repl [-engine interpreter|vm]:\n  start the REPL.\n" }

func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.engine, "engine", "vm", "execution engine: interpreter or vm")
}

func (r *replCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mode, err := parseEngine(r.engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitUsageError
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start line editor: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("Welcome to Atlas!")
	rt := runtime.New(mode)
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return subcommands.ExitSuccess
		}
		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		toks, lexErr := lexer.CreateLexer(source).Scan()
		if lexErr != nil {
			fmt.Fprintln(os.Stderr, lexErr)
			buffer.Reset()
			continue
		}
		if !isInputReady(toks) {
			continue
		}

		result, evalErr := rt.Eval(source)
		if evalErr != nil {
			fmt.Fprintln(os.Stderr, evalErr.Error())
			buffer.Reset()
			continue
		}
		if result != nil {
			fmt.Println(result.String())
		}
		buffer.Reset()
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".atlas_history"
	}
	return home + "/.atlas_history"
}

// isInputReady reports whether tokens form a complete, parseable unit:
// every brace must be closed, and the last real token can't be one that
// obviously expects a continuation. Grounded on the teacher's
// cmd_repl_compiled.go isInputReady/lastNonEOF, extended for this grammar's
// token set (e.g. "fn" and match arms use token.FUNC/token.MATCH, braces are
// token.LBRACE/RBRACE here rather than LCUR/RCUR).
func isInputReady(tokens []token.Token) bool {
	depth := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LBRACE, token.LPA, token.LBRACKET:
			depth++
		case token.RBRACE, token.RPA, token.RBRACKET:
			depth--
		}
	}
	if depth > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}
	switch last.TokenType {
	case token.ASSIGN, token.ADD, token.SUB, token.MULT, token.DIV, token.MOD,
		token.BANG, token.EQUAL_EQUAL, token.NOT_EQUAL,
		token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL,
		token.COMMA, token.LPA, token.LBRACE, token.LBRACKET,
		token.IF, token.ELSE, token.WHILE, token.FOR, token.FUNC,
		token.RETURN, token.VAR, token.LET, token.AND, token.OR, token.PRINT, token.MATCH:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}
