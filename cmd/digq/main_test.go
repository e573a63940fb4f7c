package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

type testCase struct {
	args   []string
	stdout []string
	stderr string
}

var mainTestCases = []testCase{
	{[]string{"-h"}, []string{"SYNOPSIS"}, ""},
	{[]string{"-version"}, []string{"Version"}, ""},
	{[]string{}, []string{}, "query name is required"},
	{[]string{"example.net", "BOGUSTYPE"}, []string{}, "unrecognized argument"},
	{[]string{"-resolv-conf", "testdata/does-not-exist.conf", "example.net"}, []string{}, "resolvconf:"},
	{[]string{"+trace"}, []string{}, "query name is required"}, // +trace must not be mistaken for the name
	{[]string{"+bogus", "example.net"}, []string{}, "unrecognized option"},
}

func TestMain(t *testing.T) {
	for tx, tc := range mainTestCases {
		runTest(t, tx, tc)
	}
}

func runTest(t *testing.T, tx int, tc testCase) {
	t.Run(fmt.Sprintf("%d", tx), func(t *testing.T) {
		args := append([]string{"digq"}, tc.args...)
		out := &bytes.Buffer{}
		errOut := &bytes.Buffer{}
		mainInit(out, errOut)
		ec := mainExecute(args)

		outStr := out.String()
		errStr := errOut.String()

		if ec != 0 && len(tc.stderr) == 0 {
			t.Error("unexpected non-zero exit code", ec, outStr, errStr)
		}
		if len(errStr) > 0 && len(tc.stderr) == 0 {
			t.Error("did not expect stderr:", errStr)
		}
		if len(tc.stderr) > 0 && !strings.Contains(errStr, tc.stderr) {
			t.Error("stderr expected:\n", tc.stderr, "got:\n", errStr, args)
		}
		for _, o := range tc.stdout {
			if !strings.Contains(outStr, o) {
				t.Error("stdout expected:\n", o, "got:\n", outStr, args)
			}
		}
	})
}
