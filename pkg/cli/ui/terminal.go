/* Copyright 2025 Quill Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ui provides the terminal interactions with the user
package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/quillnotes/quill/pkg/cli/log"
)

func readInput() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}

	return strings.Trim(input, "\r\n"), nil
}

// PromptInput prompts the user input and saves the result to the destination
func PromptInput(message string, dest *string) error {
	log.Askf(message, false)

	input, err := readInput()
	if err != nil {
		return errors.Wrap(err, "getting user input")
	}

	*dest = input

	return nil
}

// PromptPassword prompts the user input a password and saves the result to
// the destination. The input is masked, meaning it is not echoed on the
// terminal.
func PromptPassword(message string, dest *string) error {
	log.Askf(message, true)

	password, err := terminal.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return errors.Wrap(err, "getting user input")
	}

	fmt.Println("")

	*dest = string(password)

	return nil
}

// yesNo interprets a confirmation reply. "y" and "yes" confirm; empty
// input declines unless the prompt is optimistic.
func yesNo(input string, optimistic bool) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return optimistic
	}

	return input == "y" || input == "yes"
}

// Confirm prompts for user input to confirm a choice. An optimistic prompt
// treats an empty reply as confirmation.
func Confirm(question string, optimistic bool) (bool, error) {
	choices := "y/N"
	if optimistic {
		choices = "Y/n"
	}

	log.Askf("%s (%s)", false, question, choices)

	input, err := readInput()
	if err != nil {
		return false, errors.Wrap(err, "getting user input")
	}

	return yesNo(input, optimistic), nil
}
