package main

import "github.com/yigit/deptportal/cmd/api/cmd"

func main() {
	cmd.Execute()
}
