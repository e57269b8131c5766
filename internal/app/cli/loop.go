// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"

	"week-planner/internal/runtime/session"
	"week-planner/pkg/log"
)

// GoodbyeMessage 退出时的固定输出
const GoodbyeMessage = "Assistant: Goodbye!"

// Conversation 终端循环所需的会话操作（session.Manager 实现）
type Conversation interface {
	Start(ctx context.Context) (*session.TurnResult, error)
	Send(ctx context.Context, id, text string) (*session.TurnResult, error)
}

// Options 终端循环选项
type Options struct {
	In     io.Reader
	Out    io.Writer
	Plain  bool // 禁用 markdown 渲染
	Width  int
	Logger *log.Logger
}

// Loop 交互式对话：问候、逐行读取输入、打印助手回复
type Loop struct {
	conv     Conversation
	in       io.Reader
	out      io.Writer
	logger   *log.Logger
	renderer *glamour.TermRenderer
}

// New 创建终端循环；输出为终端且未指定 Plain 时用 glamour 渲染回复
func New(conv Conversation, opts Options) *Loop {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	l := &Loop{conv: conv, in: opts.In, out: opts.Out, logger: opts.Logger}
	if !opts.Plain && isTerminal(opts.Out) {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(opts.Width),
		)
		if err != nil {
			opts.Logger.Warn("markdown renderer unavailable", "error", err)
		} else {
			l.renderer = r
		}
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsExitWord quit / exit / q（大小写不敏感）
func IsExitWord(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// Run 运行到输入结束、退出词或 ctx 取消；单轮失败只记录日志，循环继续
func (l *Loop) Run(ctx context.Context) error {
	res, err := l.conv.Start(ctx)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	l.logger.Info("session started", "session_id", res.SessionID)
	l.printReplies(res)

	scanner := bufio.NewScanner(l.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(l.out, "User: ")
		if !scanner.Scan() {
			fmt.Fprintln(l.out)
			return scanner.Err()
		}
		line := scanner.Text()
		if IsExitWord(line) {
			fmt.Fprintln(l.out, GoodbyeMessage)
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		turn, err := l.conv.Send(ctx, res.SessionID, line)
		if err != nil {
			l.logger.Error("turn failed", "session_id", res.SessionID, "error", err)
			fmt.Fprintf(l.out, "Error: %v\n", err)
			continue
		}
		l.printReplies(turn)
	}
}

func (l *Loop) printReplies(res *session.TurnResult) {
	for _, reply := range res.Replies() {
		if l.renderer != nil {
			if rendered, err := l.renderer.Render(reply); err == nil {
				fmt.Fprintln(l.out, "Assistant:")
				fmt.Fprint(l.out, rendered)
				continue
			}
		}
		fmt.Fprintf(l.out, "Assistant: %s\n", reply)
	}
}
