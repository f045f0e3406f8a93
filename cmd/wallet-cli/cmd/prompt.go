package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("两次输入的密码不一致")

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	return string(b), nil
}

// readNewPassword 输入并确认新密码
func readNewPassword(minLen int) (string, error) {
	password, err := readPassword("输入密码: ")
	if err != nil {
		return "", err
	}
	confirm, err := readPassword("确认密码: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errPasswordMismatch
	}
	if len(password) < minLen {
		return "", fmt.Errorf("密码长度至少需要 %d 位", minLen)
	}
	return password, nil
}

func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
