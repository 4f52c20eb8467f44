package main

import (
	"fmt"
	"io"

	"Sapper-App/internal/domain/model"
)

func printAssignment(out io.Writer, views []model.AssignmentView) {
	for _, v := range views {
		fmt.Fprintf(out, "工兵 %s %s: %d ゾーン\n", v.AgentID, v.Location, len(v.Zones))
		for _, z := range v.Zones {
			fmt.Fprintf(out, "  - %s %s\n", z.ID, z.Centroid)
		}
	}
}

func printPlan(out io.Writer, resp *model.PlanResponse) {
	fmt.Fprintf(out, "実行ID: %s (戦略: %s)\n\n", resp.RunID, resp.Strategy)
	printAssignment(out, resp.Assignment)
	fmt.Fprintln(out)

	for _, p := range resp.Paths {
		fmt.Fprintf(out, "工兵 %s の経路 (%.1f m)\n", p.AgentID, p.DistanceMeters())
		running := 0.0
		for i, s := range p.Segments {
			running += s.Cost
			mark := ""
			if s.Degraded() {
				mark = " ⚠️ 標高代替"
			}
			fmt.Fprintf(out, "  ステップ%d: %s → %s 区間コスト %.2f 累計 %.2f%s\n", i+1, s.From, s.To, s.Cost, running, mark)
		}
		fmt.Fprintf(out, "  経路コスト: %.2f\n", p.TotalCost)
	}

	fmt.Fprintf(out, "\n総コスト: %.2f\n", resp.TotalCost)
	if resp.Degraded {
		fmt.Fprintln(out, "⚠️ 一部の地点で標高を取得できなかったため、コストは概算です")
	}
}
