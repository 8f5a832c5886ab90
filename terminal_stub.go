//go:build !windows

package main

func enableTerminalColor() {}
