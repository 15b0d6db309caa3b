package internal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jsamit27/ava/internal/configs"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/jsamit27/ava/internal/core/port/usecases_port"
	"github.com/jsamit27/ava/internal/core/usecase"

	"github.com/google/uuid"
)

const cliLogsLimit = 5

// CLIApp консольный чат поверх того же ядра, что и веб-сервис
type CLIApp struct {
	assistant *assistant
	loggers   *loggers
	logger    port.LoggerPort
	in        io.Reader
	out       io.Writer
}

func NewCLIApp(in io.Reader, out io.Writer) (*CLIApp, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if err := appConfig.RequireDatabase(); err != nil {
		return nil, err
	}
	// в консоли сессии живут только в памяти процесса
	appConfig.Session.Store = "memory"

	lg, err := initLoggers(appConfig, "cli")
	if err != nil {
		return nil, err
	}

	signingKey := appConfig.Session.SecretKey
	if signingKey == "" {
		signingKey = uuid.New().String()
	}
	core, err := newAssistant(context.Background(), appConfig, lg.base, assistantOptions{
		logsLimit:  cliLogsLimit,
		signingKey: signingKey,
	})
	if err != nil {
		lg.close()
		return nil, err
	}

	return &CLIApp{
		assistant: core,
		loggers:   lg,
		logger:    lg.base.WithFields(port.Fields{"component": "cli"}),
		in:        in,
		out:       out,
	}, nil
}

func (a *CLIApp) Run() error {
	defer func() {
		a.assistant.close(a.logger)
		a.loggers.close()
	}()

	ctx := contextkeys.ContextWithLogger(context.Background(), a.logger)
	return runConsole(ctx, a.in, a.out, a.assistant.initSession, a.assistant.chatTurn, a.assistant.getLogs)
}

// runConsole спрашивает параметры сессии и ведет диалог до exit/quit или конца ввода
func runConsole(ctx context.Context, in io.Reader, out io.Writer,
	initSession usecases_port.InitSessionUseCasePort,
	chatTurn usecases_port.ChatTurnUseCasePort,
	getLogs usecases_port.GetSessionLogsUseCasePort) error {

	scanner := bufio.NewScanner(in)
	ask := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	var params domain.SessionParams
	var ok bool
	if params.LeadID, ok = ask("Enter lead_id: "); !ok {
		return scanner.Err()
	}
	if params.BuyerID, ok = ask("Enter buyer_id: "); !ok {
		return scanner.Err()
	}
	if params.EscalationPhone, ok = ask("Enter escalation phone number: "); !ok {
		return scanner.Err()
	}

	res, err := initSession.Execute(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	fmt.Fprint(out, "\nAva (Ava-backed) is ready. Type your message (or 'exit', '/logs').\n\n")
	for {
		line, ok := ask("You: ")
		if !ok {
			break
		}
		if usecase.IsExitCommand(line) {
			break
		}
		if line == "/logs" {
			printLogs(ctx, out, getLogs, res.SessionID)
			continue
		}

		reply, err := chatTurn.Execute(ctx, res.SessionID, line)
		if err != nil {
			fmt.Fprintf(out, "Ava (error): %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Ava: %s\n\n", reply)
	}

	fmt.Fprintln(out, "Bye!")
	return scanner.Err()
}

func printLogs(ctx context.Context, out io.Writer, getLogs usecases_port.GetSessionLogsUseCasePort, sessionID string) {
	logs, err := getLogs.Execute(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(out, "Ava (error): %v\n", err)
		return
	}
	fmt.Fprintln(out, "---- recent logs ----")
	for _, entry := range logs {
		line, _ := json.Marshal(entry)
		fmt.Fprintln(out, string(line))
	}
	fmt.Fprintln(out, "---------------------")
}
