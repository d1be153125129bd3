package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/agroapi/agro"
	"github.com/s0up4200/agroapi/filter"
	"github.com/s0up4200/agroapi/geo"
)

var (
	polygonName   string
	polygonCoords string
	cellsRes      int
)

// polygonsCmd groups the polygon commands
var polygonsCmd = &cobra.Command{
	Use:     "polygons",
	Aliases: []string{"polygon", "poly"},
	Short:   "Manage Agro API polygons",
}

var polygonsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List polygons, optionally filtered",
	Long: `List all polygons of the account.

Filter fields: ID, Name, Area, Created, CenterLon, CenterLat.
Example: agroapi polygons list --filter 'Area > 100 and contains(Name, "north")'`,
	Args: cobra.NoArgs,
	RunE: runPolygonsList,
}

var polygonsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one polygon",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolygonsGet,
}

var polygonsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a polygon from GeoJSON coordinates",
	Long: `Create a polygon. --coords takes GeoJSON polygon coordinates: a list of
rings of [lon, lat] positions, each ring closed (first position equals last).`,
	Args: cobra.NoArgs,
	RunE: runPolygonsCreate,
}

var polygonsRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a polygon",
	Args:  cobra.ExactArgs(2),
	RunE:  runPolygonsRename,
}

var polygonsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a polygon",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolygonsDelete,
}

func init() {
	rootCmd.AddCommand(polygonsCmd)
	polygonsCmd.AddCommand(polygonsListCmd, polygonsGetCmd, polygonsCreateCmd, polygonsRenameCmd, polygonsDeleteCmd)

	polygonsListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a configured filter")

	polygonsGetCmd.Flags().IntVar(&cellsRes, "cells", -1, "also list the H3 cells covering the polygon at this resolution (0-15)")

	polygonsCreateCmd.Flags().StringVar(&polygonName, "name", "", "polygon name")
	polygonsCreateCmd.Flags().StringVar(&polygonCoords, "coords", "", "GeoJSON polygon coordinates, e.g. [[[lon,lat],...]]")
	_ = polygonsCreateCmd.MarkFlagRequired("name")
	_ = polygonsCreateCmd.MarkFlagRequired("coords")
}

func runPolygonsList(cmd *cobra.Command, args []string) error {
	f, err := compileFilter(filter.KindPolygon, filterExpr)
	if err != nil {
		return err
	}

	polys, err := prov.ListPolygons().Await(cmd.Context())
	if err != nil {
		return err
	}

	polys, err = filter.Polygons(f, polys)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(polys)
	}

	if len(polys) == 0 {
		fmt.Println("No polygons found.")
		return nil
	}

	fmt.Printf("Found %d %s:\n\n", len(polys), plural(len(polys), "polygon"))
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-26s %-32s %10s %s\n", "ID", "NAME", "AREA (HA)", "CREATED")
	fmt.Println(strings.Repeat("━", 85))

	for _, p := range polys {
		fmt.Printf("%-26s %-32s %10.2f %s\n", p.ID, truncate(p.Name, 30), p.Area, formatDate(p.Created()))
	}

	return nil
}

func runPolygonsGet(cmd *cobra.Command, args []string) error {
	poly, err := prov.GetPolygon(args[0]).Await(cmd.Context())
	if err != nil {
		return err
	}
	if poly == nil {
		return fmt.Errorf("polygon %s: empty response", args[0])
	}

	var cells []string
	var centerCell string
	if cellsRes >= 0 {
		cells, err = geo.Cells(poly.GeoJSON.Geometry, cellsRes)
		if err != nil {
			return fmt.Errorf("failed to compute H3 cells: %w", err)
		}
		centerCell, err = geo.CenterCell(poly.Center, cellsRes)
		if err != nil {
			return fmt.Errorf("failed to compute H3 center cell: %w", err)
		}
	}

	if jsonOutput() {
		return printJSON(struct {
			*agro.Polygon
			CenterCell string   `json:"center_cell,omitempty"`
			Cells      []string `json:"cells,omitempty"`
		}{poly, centerCell, cells})
	}

	printPolygon(poly)
	if cellsRes >= 0 {
		fmt.Printf("  H3 center:  %s (res %d)\n", centerCell, cellsRes)
		fmt.Printf("  H3 cells:   %d\n", len(cells))
		for _, c := range cells {
			fmt.Printf("    %s\n", c)
		}
	}
	return nil
}

func runPolygonsCreate(cmd *cobra.Command, args []string) error {
	var rings [][][]float64
	if err := json.Unmarshal([]byte(polygonCoords), &rings); err != nil {
		return fmt.Errorf("invalid --coords: %w", err)
	}

	req := agro.NewPolygonRequest(polygonName, rings)
	if err := req.Validate(); err != nil {
		return err
	}

	poly, err := prov.CreatePolygon(req).Await(cmd.Context())
	if err != nil {
		return err
	}
	if poly == nil {
		return fmt.Errorf("create polygon %q: empty response", polygonName)
	}

	logger.Info().Str("polygon_id", poly.ID).Str("name", poly.Name).Msg("Created polygon")

	if jsonOutput() {
		return printJSON(poly)
	}
	printPolygon(poly)
	return nil
}

func runPolygonsRename(cmd *cobra.Command, args []string) error {
	poly, err := prov.UpdatePolygon(args[0], args[1]).Await(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(poly)
	}
	fmt.Printf("✓ Renamed polygon %s to %q\n", args[0], args[1])
	return nil
}

func runPolygonsDelete(cmd *cobra.Command, args []string) error {
	if _, err := prov.DeletePolygon(args[0]).Await(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted polygon %s\n", args[0])
	return nil
}

func printPolygon(p *agro.Polygon) {
	fmt.Printf("%s\n", p.Name)
	fmt.Printf("  ID:         %s\n", p.ID)
	fmt.Printf("  Area:       %.2f ha\n", p.Area)
	if len(p.Center) == 2 {
		fmt.Printf("  Center:     %.5f, %.5f\n", p.Center[1], p.Center[0])
	}
	fmt.Printf("  Created:    %s\n", formatDate(p.Created()))
	if bbox, err := geo.Bounds(p.GeoJSON.Geometry); err == nil {
		fmt.Printf("  Bounds:     %.5f,%.5f %.5f,%.5f\n", bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat)
	}
}
