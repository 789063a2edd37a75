// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the ShapeNet part-segmentation tables: the sixteen
// object categories, their synset identifiers and how many part labels
// each one has.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDataset is returned for dataset names without a data layer.
var ErrUnknownDataset = errors.New("dataset: unknown dataset")

// ErrUnknownCategory is returned for categories outside the ShapeNet tables.
var ErrUnknownCategory = errors.New("dataset: unknown category")

// ShapeNet is the only dataset with a data layer implementation.
const ShapeNet = "shapenet"

// Category is one ShapeNet part-segmentation object class.
type Category struct {
	Synset string
	Name   string
	Parts  int
}

var shapeNetCategories = []Category{
	{"02691156", "airplane", 4},
	{"02773838", "bag", 2},
	{"02954340", "cap", 2},
	{"02958343", "car", 4},
	{"03001627", "chair", 4},
	{"03261776", "earphone", 3},
	{"03467517", "guitar", 3},
	{"03624134", "knife", 2},
	{"03636649", "lamp", 4},
	{"03642806", "laptop", 2},
	{"03790512", "motorbike", 6},
	{"03797390", "mug", 2},
	{"03948459", "pistol", 3},
	{"04099429", "rocket", 3},
	{"04225987", "skateboard", 3},
	{"04379243", "table", 3},
}

// Categories returns a copy of the ShapeNet category table in synset order.
func Categories() []Category {
	out := make([]Category, len(shapeNetCategories))
	copy(out, shapeNetCategories)
	return out
}

// TotalParts is the number of part labels across every category.
func TotalParts() int {
	n := 0
	for _, c := range shapeNetCategories {
		n += c.Parts
	}
	return n
}

// ResolveCategory accepts a synset id (anything starting with `0`) or a
// category name.
func ResolveCategory(v string) (Category, error) {
	bySynset := strings.HasPrefix(v, "0")
	for _, c := range shapeNetCategories {
		if (bySynset && c.Synset == v) || (!bySynset && c.Name == v) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
}

// Lookup validates a dataset name.
func Lookup(name string) error {
	if name != ShapeNet {
		return fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return nil
}
