// Package exporter writes the combined fixture dataset as delimited text.
//
// CSVWriter handles file creation, optional UTF-8 BOM and streaming.
// DatasetWriter renders a domain.Dataset row by row in panel order:
//
//	var1,var2,var3,var4,var5,dataset_id,obs_id,treat_status
//	-0.55,0.52,0.47,1.37,-0.92,0,0,1
//
// Feature columns use FloatStyleShortest unless configured otherwise.
// Integer columns are plain integers. Lines end in "\n" and the dataset file
// carries no BOM.
//
// SummarizePanels maps each panel to its row range in the file.
package exporter
