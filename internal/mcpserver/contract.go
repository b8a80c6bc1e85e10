package mcpserver

// DataRootContract describes the data-root layout the tools read from.
const DataRootContract = `# metaviz data root

All statistics are precomputed; the tools only read them.

## Layout

` + "```" + `
data/
  stats/
    index.json                                   {"snapshots": [{date, node_types, relations}]}
    {snapshot}/attributes/{type}.json            {type, count, attributes: [{name, count, pct, unique_count, unique_pct}]}
    {snapshot}/relation_attributes/{rel}.json    {relation, snapshot, source_type, target_type, stats: {...}}
  metadata/
    node_index.json                              {"types": {TECH: {technicalName, name, isApplication, isSystem, isCodelist, attributes}}}
    relation_index.json                          {"relations": {TECH: {technicalName, name, type, source, target}}}
` + "```" + `

## Rules

1. Snapshots are dated ` + "`" + `YYYY-MM-DD` + "`" + ` and listed oldest first; tools default to the latest.
2. ` + "`" + `pct` + "`" + ` is the share of CIs with the attribute filled, in percent.
   ` + "`" + `unique_pct` + "`" + ` is the share of distinct values among filled ones.
3. Node type categories: a codelist is an application type labelled as codelist.
   Filtering by codelist takes precedence over the application flag.
4. Relation categories are ` + "`" + `application` + "`" + ` and ` + "`" + `system` + "`" + `, matched by the relation's type.
5. Relation stats: ` + "`" + `parallel_edges = edges_total - unique_pairs` + "`" + `; cardinality is one of
   ` + "`" + `empty, one-to-one, one-to-many, many-to-one, many-to-many` + "`" + `.
6. Islands are connected components among connected nodes of one side; ` + "`" + `multi_islands` + "`" + `
   lists components of more than one node as fractions of the connected nodes.
7. A missing statistics document means no stats for that entity in that snapshot.
`
