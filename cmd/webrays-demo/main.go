// Command webrays-demo builds a one-triangle scene, runs a single
// intersection and occlusion query against it on the CPU backend, and
// prints the emitted scene-accessor text's binding table.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gekko3d/webrays"
	"github.com/gekko3d/webrays/backend"
	"github.com/gekko3d/webrays/scene"
	"github.com/gekko3d/webrays/traverse"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	wide := flag.Bool("wide", false, "use the 8-wide compressed BVH builder instead of the binary SAH builder")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	bvhKind := scene.KindSAH
	if *wide {
		bvhKind = scene.KindWide
	}

	mod, err := webrays.Init(backend.KindCPU, bvhKind)
	if err != nil {
		log.Fatalf("webrays: init: %v", err)
	}
	defer mod.Close()
	mod.SetDebugLogging(*debug)

	blas, err := mod.CreateADS(map[string]string{"type": "BLAS"})
	if err != nil {
		log.Fatalf("webrays: create_ads: %v", err)
	}

	positions := []mgl32.Vec4{{-1, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}}
	normals := []mgl32.Vec4{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}}
	if _, err := mod.AddShape(blas, positions, normals, nil, 3, []int32{0, 1, 2, 0}, 1); err != nil {
		log.Fatalf("webrays: add_shape: %v", err)
	}

	if _, err := mod.Update(); err != nil {
		log.Fatalf("webrays: update: %v", err)
	}

	ray := traverse.Ray{Origin: mgl32.Vec3{0, 0.25, -1}, Direction: mgl32.Vec3{0, 0, 1}, TMax: 1000}
	hit, err := mod.QueryIntersection(blas, ray)
	if err != nil {
		log.Fatalf("webrays: query_intersection: %v", err)
	}
	fmt.Printf("closest hit: prim=%d t=%.4f bary=(%.4f,%.4f)\n", hit.PrimIDPacked, hit.T, hit.B1, hit.B2)

	occluded, err := mod.QueryOcclusion(blas, ray)
	if err != nil {
		log.Fatalf("webrays: query_occlusion: %v", err)
	}
	fmt.Printf("occluded: %v\n", occluded)

	fmt.Printf("accessor bindings: %v\n", mod.GetSceneAccessorBindings())
}
