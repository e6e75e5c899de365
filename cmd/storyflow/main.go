package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/storyflow/internal/cli"
	sferrors "github.com/matzehuels/storyflow/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stdout, os.Stderr, cli.LogInfo)
	err := c.RootCommand().ExecuteContext(ctx)
	if cerr := c.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, describe(cerr))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// describe formats err as "CODE: message (identifier)" when it carries a
// code, falling back to the plain error text.
func describe(err error) string {
	code := sferrors.GetCode(err)
	if code == "" {
		return err.Error()
	}
	msg := fmt.Sprintf("%s: %s", code, sferrors.UserMessage(err))
	if subject := sferrors.SubjectOf(err); subject != "" {
		msg += fmt.Sprintf(" (%s)", subject)
	}
	return msg
}
