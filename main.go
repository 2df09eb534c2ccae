package main

import (
	_ "kohchanghospital.go.th/admin/src/admintools"
	_ "kohchanghospital.go.th/admin/src/fakebackend/cmd"
	"kohchanghospital.go.th/admin/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
