package main

import (
	"flag"
	"log"

	"github.com/OpenKore/openkore-sub004/config"
	"github.com/OpenKore/openkore-sub004/formats"
	"github.com/OpenKore/openkore-sub004/status"
	"github.com/OpenKore/openkore-sub004/web"
)

func main() {
	var addr, dir, cfgPath, encoding string
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with field files")
	flag.StringVar(&cfgPath, "config", "", "Path to yaml settings (FIELD_CONFIG env by default)")
	flag.StringVar(&encoding, "encoding", "", "Text encoding of names inside companion files")
	flag.Parse()

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	if err := config.Load(cfgPath); err != nil {
		log.Fatal(err)
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	s := web.NewServer(dir, formats.Default(), status.NewHub())
	if err := web.StartServer(addr, s); err != nil {
		log.Fatal(err)
	}
}
