package assetgo_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/assetgo"
	"github.com/hupe1980/assetgo/asset"
	"github.com/hupe1980/assetgo/loaders"
	"github.com/hupe1980/assetgo/source"
)

// Example_load demonstrates loading a shader in the background.
func Example_load() {
	ctx := context.Background()

	src := source.NewMemorySource()
	src.Put("shaders/basic.vert", []byte("void main() {}"))

	app := assetgo.New(assetgo.WithWorkers(2))
	defer app.Close()

	shaders, err := assetgo.Register[loaders.Shader](app, loaders.NewShaderLoader(src))
	if err != nil {
		log.Fatal(err)
	}

	track, err := assetgo.Load[loaders.Shader](app, "shaders/basic.vert", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer track.Release()

	for track.State() == asset.LoadPending {
		if _, err := app.Tick(ctx); err != nil {
			log.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}

	sh, _ := shaders.Get(track.ID())
	fmt.Println(track.State(), sh.Stage)
	// Output: loaded vertex
}

// Example_events demonstrates observing store changes.
func Example_events() {
	app := assetgo.New()
	defer app.Close()

	materials, _ := assetgo.Register[loaders.Material](app, nil)
	reader := assetgo.Events[loaders.Material](app).Reader()

	h := materials.Add(loaders.Material{Name: "brick"})
	app.Tick(context.Background())
	for _, ev := range reader.Read() {
		fmt.Println(ev.Kind)
	}

	h.Release()
	app.Tick(context.Background())
	for _, ev := range reader.Read() {
		fmt.Println(ev.Kind)
	}
	// Output:
	// created
	// removed
}
