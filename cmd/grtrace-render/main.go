// grtrace-render reads a scenery XML file, ray-traces it, and writes a
// grayscale PNG preview of the resulting Intensity buffer — a thin demo
// binary exercising sceneryio, raytrace and preview end to end, grounded
// on the teacher's cmd/mission (flag-driven, no cobra: CLI ergonomics are
// out of scope, this binary exists only to wire the pipeline).
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/relgr/raytrace/logging"
	"github.com/relgr/raytrace/preview"
	"github.com/relgr/raytrace/raytrace"
	"github.com/relgr/raytrace/sceneryio"
	"github.com/relgr/raytrace/units"
)

const defaultScenery = "~~unset~~"

var (
	sceneryPath string
	outPath     string
)

func init() {
	flag.StringVar(&sceneryPath, "scenery", defaultScenery, "scenery XML file")
	flag.StringVar(&outPath, "out", "out.png", "output PNG path")
}

func main() {
	flag.Parse()
	logger := logging.New("grtrace-render")

	if sceneryPath == defaultScenery {
		log.Fatal("no -scenery provided")
	}

	f, err := os.Open(sceneryPath)
	if err != nil {
		log.Fatalf("open scenery: %s", err)
	}
	defer f.Close()

	sc, err := sceneryio.Load(f, units.Default)
	if err != nil {
		log.Fatalf("load scenery: %s", err)
	}
	logger.Log("msg", "scenery loaded", "resX", sc.Screen.ResX, "resY", sc.Screen.ResY)

	buf, err := raytrace.RayTrace(context.Background(), sc, 0, sc.Screen.ResX-1, 0, sc.Screen.ResY-1)
	if err != nil {
		log.Fatalf("ray trace: %s", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %s", outPath, err)
	}
	defer out.Close()

	if err := preview.WritePNG(out, buf); err != nil {
		log.Fatalf("write preview: %s", err)
	}
	logger.Log("msg", "preview written", "path", outPath)
}
